package batch

import (
	"fmt"

	"github.com/kardessa/gcparse/jsontree"
)

// parseMission discovers mission info configs from the MainMission excel
// output, decodes each, and follows its SubMissionList into a second level
// of LevelGraphConfig paths. It also sweeps eight performance-list excel
// outputs for a flat set of LevelGraphConfig paths.
func (d *Driver) parseMission(outDir string) error {
	d.parseMissionInfo(outDir)
	d.parsePerformances(outDir)
	return nil
}

func (d *Driver) parseMissionInfo(outDir string) {
	rows, err := d.readExcelJSON("MainMission.json")
	if err != nil {
		return
	}

	missionPaths := make(map[string]struct{})
	for _, row := range rows {
		id, ok := row["MainMissionID"]
		if !ok {
			continue
		}
		missionPaths[fmt.Sprintf("Config/Level/Mission/%v/MissionInfo_%v.json", id, id)] = struct{}{}
	}

	subMissionPaths := make(map[string]struct{})
	for path := range missionPaths {
		value, err := d.parseConfigPath(outDir, path, "RPG.GameCore.MainMissionInfoConfig")
		if err != nil {
			continue
		}
		obj, ok := value.(*jsontree.Object)
		if !ok {
			continue
		}
		list, ok := obj.Get("SubMissionList")
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
			if v, ok := entry.Get("MissionJsonPath"); ok {
				if s, ok := v.(string); ok && s != "" {
					subMissionPaths[s] = struct{}{}
				}
			}
		}
	}

	for p := range subMissionPaths {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.LevelGraphConfig")
	}
}

func (d *Driver) parsePerformances(outDir string) {
	performances := make(map[string]struct{})
	for _, excel := range []string{
		"PerformanceA.json", "PerformanceC.json", "PerformanceCG.json", "PerformanceD.json",
		"PerformanceDS.json", "PerformanceE.json", "PerformanceVideo.json", "DialogueNPC.json",
	} {
		rows, err := d.readExcelJSON(excel)
		if err != nil {
			continue
		}
		for _, row := range rows {
			p, ok := asString(row["PerformancePath"])
			if !ok {
				p, ok = asString(row["ActPath"])
			}
			if ok && p != "" {
				performances[p] = struct{}{}
			}
		}
	}

	for p := range performances {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.LevelGraphConfig")
	}
}
