package batch

import "github.com/kardessa/gcparse/jsontree"

// parseRogueNPC discovers NPC config paths from three excel outputs, then
// decodes each NPC config and, from its DialogueList, a second level of
// dialogue and option paths.
func (d *Driver) parseRogueNPC(outDir string) error {
	var npcPaths []string
	for _, excel := range []string{"RogueNPC.json", "RogueTournNPC.json", "RogueMagicNPC.json"} {
		rows, err := d.readExcelJSON(excel)
		if err != nil {
			continue
		}
		for _, row := range rows {
			if p, ok := asString(row["NPCJsonPath"]); ok && p != "" {
				npcPaths = append(npcPaths, p)
			}
		}
	}

	dialoguePaths := make(map[string]struct{})
	optionPaths := make(map[string]struct{})

	for _, path := range npcPaths {
		value, err := d.parseConfigPath(outDir, path, "RPG.GameCore.RogueNPCConfig")
		if err != nil {
			continue
		}
		obj, ok := value.(*jsontree.Object)
		if !ok {
			continue
		}
		list, ok := obj.Get("DialogueList")
		if !ok {
			continue
		}
		arr, ok := list.(jsontree.Array)
		if !ok {
			continue
		}
		for _, item := range arr {
			entry, ok := item.(*jsontree.Object)
			if !ok {
				continue
			}
			if v, ok := entry.Get("DialoguePath"); ok {
				if s, ok := v.(string); ok && s != "" {
					dialoguePaths[s] = struct{}{}
				}
			}
			if v, ok := entry.Get("OptionPath"); ok {
				if s, ok := v.(string); ok && s != "" {
					optionPaths[s] = struct{}{}
				}
			}
		}
	}

	for p := range dialoguePaths {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.LevelGraphConfig")
	}
	for p := range optionPaths {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.RogueDialogueEventConfig")
	}
	return nil
}
