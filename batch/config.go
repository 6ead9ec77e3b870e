package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/kardessa/gcparse/catalog"
	"github.com/kardessa/gcparse/decode"
	"github.com/kardessa/gcparse/schema"
)

// ConfigManifest mirrors BakedConfig/ConfigManifest.json's direct path
// lists: config groups this tool can resolve without first decoding any
// excel output.
type ConfigManifest struct {
	AdventureAbilityConfig              []string `json:"AdventureAbilityConfig"`
	TurnBasedAbilityConfig              []string `json:"TurnBasedAbilityConfig"`
	BattleLineupSkillTreePresetConfig   []string `json:"BattleLineupSkillTreePresetConfig"`
	GlobalModifierConfig                []string `json:"GlobalModifierConfig"`
	AdventureModifierConfig             []string `json:"AdventureModifierConfig"`
	ComplexSkillAIGlobalGroupConfig     []string `json:"ComplexSkillAIGlobalGroupConfig"`
	GlobalTaskTemplate                  []string `json:"GlobalTaskTemplate"`
}

func parseConfigManifest(data []byte) (ConfigManifest, error) {
	var m ConfigManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("batch: config manifest: %w", err)
	}
	return m, nil
}

// splitPath mirrors the reference tool's rsplit_once('/') helper: a
// relative json path splits into its parent directory and file name.
func splitPath(jsonPath string) (dir, file string, ok bool) {
	i := strings.LastIndexByte(jsonPath, '/')
	if i < 0 {
		return "", "", false
	}
	d := jsonPath[:i]
	if d == "" {
		d = "/"
	}
	return d, jsonPath[i+1:], true
}

// parseConfigPath resolves jsonPath (relative to BakedConfig/) as typeName,
// writes it under <outDir>/<dir>/<file>, and returns the decoded value so
// callers can walk nested discovery fields out of it.
func (d *Driver) parseConfigPath(outDir, jsonPath, typeName string) (any, error) {
	dir, file, ok := splitPath(jsonPath)
	if !ok {
		return nil, fmt.Errorf("batch: invalid config path %q", jsonPath)
	}

	assetPath := "BakedConfig/" + strings.Replace(jsonPath, ".json", ".bytes", 1)
	data, found := d.Catalog.LookupHash(catalog.Hash32(assetPath))
	if !found {
		return nil, fmt.Errorf("batch: asset not found: %s", jsonPath)
	}
	data = skipLeadingZero(data)

	var value any
	err := safeParse(jsonPath, func() error {
		parser := decode.NewParser(d.Schema, data)
		v, err := parser.Parse(schema.ValueKind{Tag: schema.KindClass, Name: typeName}, false)
		if err != nil {
			return err
		}
		value = v

		destDir := filepath.Join(outDir, dir)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return err
		}
		return writeJSON(filepath.Join(destDir, file), v)
	})
	if err != nil {
		return nil, err
	}

	d.configs.Add(1)
	return value, nil
}

// parseConfigPathSilently is parseConfigPath but swallows not-found/decode
// errors, matching the reference tool's parse_and_count! macro which only
// counts successes and otherwise moves on.
func (d *Driver) parseConfigPathSilently(outDir, jsonPath, typeName string) {
	if _, err := d.parseConfigPath(outDir, jsonPath, typeName); err != nil {
		d.Log.Debug("config path skipped", "path", jsonPath, "error", err)
	}
}

// configGroups returns one closure per config discovery group. Each is run
// independently by RunConfigs; a failure in one group is logged, not fatal
// to the others.
func configGroups(d *Driver, manifest ConfigManifest, outDir string) []func() error {
	return []func() error{
		directListGroup(d, outDir, manifest.AdventureAbilityConfig, "RPG.GameCore.AdventureAbilityConfigList"),
		directListGroup(d, outDir, manifest.TurnBasedAbilityConfig, "RPG.GameCore.TurnBasedAbilityConfigList"),
		directListGroup(d, outDir, manifest.BattleLineupSkillTreePresetConfig, "RPG.GameCore.BattleLineupSkillTreePresetConfigList"),
		directListGroup(d, outDir, manifest.GlobalModifierConfig, "RPG.GameCore.GlobalModifierConfigList"),
		directListGroup(d, outDir, manifest.AdventureModifierConfig, "RPG.GameCore.AdventureModifierConfigList"),
		directListGroup(d, outDir, manifest.ComplexSkillAIGlobalGroupConfig, "RPG.GameCore.ComplexSkillAIGlobalGroupConfigList"),
		directListGroup(d, outDir, manifest.GlobalTaskTemplate, "RPG.GameCore.GlobalTaskTemplateConfigList"),
		func() error { return d.parseSummonUnit(outDir) },
		func() error { return d.parseVideoCaption(outDir) },
		func() error { return d.parseRogueChestMap(outDir) },
		func() error { return d.parseRogueNPC(outDir) },
		func() error { return d.parseMission(outDir) },
		func() error { return d.parseLevelOutput(outDir) },
	}
}

func directListGroup(d *Driver, outDir string, paths []string, typeName string) func() error {
	return func() error {
		for _, p := range paths {
			d.parseConfigPathSilently(outDir, p, typeName)
		}
		return nil
	}
}

// readExcelJSON loads an already-written excel output file back from disk,
// the same way the reference tool's config stage reads ExcelOutput/*.json
// produced earlier in the run.
func (d *Driver) readExcelJSON(name string) ([]map[string]any, error) {
	b, err := os.ReadFile(filepath.Join(d.OutDir, "ExcelOutput", name))
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
