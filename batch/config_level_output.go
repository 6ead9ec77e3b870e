package batch

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// levelOutputConfig pairs a synthesized output path with the type that
// decodes it, for one plane/floor pair.
type levelOutputConfig struct {
	path     string
	typeName string
}

// parseLevelOutput synthesizes per-floor config paths from the MazePlane
// excel output's (PlaneID, FloorIDList) cross product, decodes each, then
// walks the already-written RuntimeFloor configs for a second level of
// GroupInstanceList paths.
func (d *Driver) parseLevelOutput(outDir string) error {
	d.parseFloorConfigs(outDir)
	d.parseGroupConfigs(outDir)
	return nil
}

func (d *Driver) parseFloorConfigs(outDir string) {
	rows, err := d.readExcelJSON("MazePlane.json")
	if err != nil {
		return
	}

	for _, row := range rows {
		planeID, ok := row["PlaneID"]
		if !ok {
			continue
		}
		floorList, ok := row["FloorIDList"].([]any)
		if !ok {
			continue
		}

		for _, floorRaw := range floorList {
			name := fmt.Sprintf("P%v_F%v", planeID, floorRaw)

			configs := []levelOutputConfig{
				{fmt.Sprintf("Config/LevelOutput/RuntimeFloor/%s.json", name), "RPG.GameCore.RtLevelFloorInfo"},
				{fmt.Sprintf("Config/LevelOutput_Baked/Floor/%s_Baked.json", name), "RPG.GameCore.LevelFloorBakedInfo"},
				{fmt.Sprintf("Config/LevelOutput_Baked/FloorCrossMapBriefInfo/CrossMapBriefInfo_%s.json", name), "RPG.GameCore.LevelFloorCrossMapBriefInfo"},
				{fmt.Sprintf("Config/LevelOutput/Region/FloorRegion_%s.json", name), "RPG.GameCore.LevelRegionInfos"},
				{fmt.Sprintf("Config/LevelOutput/RotatableRegion/RotatableRegion_Floor_%v.json", floorRaw), "RPG.GameCore.MapRotationConfig"},
				{fmt.Sprintf("Config/LevelOutput/EraFlipper/EraFlipper_Floor_%v.json", floorRaw), "RPG.GameCore.EraFlipperConfig"},
				{fmt.Sprintf("Config/LevelOutput/Map/MapInfo_%s.json", name), "RPG.GameCore.LevelNavmapConfig"},
			}
			for _, c := range configs {
				d.parseConfigPathSilently(outDir, c.path, c.typeName)
			}
		}
	}
}

func (d *Driver) parseGroupConfigs(outDir string) {
	dir := filepath.Join(outDir, "Config/LevelOutput/RuntimeFloor")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	groupPaths := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err != nil {
			continue
		}
		list, ok := obj["GroupInstanceList"].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if p, ok := asString(m["GroupPath"]); ok && p != "" {
				groupPaths[p] = struct{}{}
			}
		}
	}

	for p := range groupPaths {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.RtLevelGroupInfoBase")
	}
}
