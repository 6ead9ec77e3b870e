package batch

// parseSummonUnit discovers RPG.GameCore.SummonUnitConfig paths from the
// already-decoded SummonUnitData excel output's JsonPath field.
func (d *Driver) parseSummonUnit(outDir string) error {
	rows, err := d.readExcelJSON("SummonUnitData.json")
	if err != nil {
		return nil // excel output not present; nothing to discover
	}
	for _, row := range rows {
		if p, ok := asString(row["JsonPath"]); ok && p != "" {
			d.parseConfigPathSilently(outDir, p, "RPG.GameCore.SummonUnitConfig")
		}
	}
	return nil
}

// parseRogueChestMap discovers RPG.GameCore.RogueChestMapConfig paths from
// the RogueDLCChessBoard excel output's ChessBoardConfiguration field.
func (d *Driver) parseRogueChestMap(outDir string) error {
	rows, err := d.readExcelJSON("RogueDLCChessBoard.json")
	if err != nil {
		return nil
	}
	for _, row := range rows {
		if p, ok := asString(row["ChessBoardConfiguration"]); ok && p != "" {
			d.parseConfigPathSilently(outDir, p, "RPG.GameCore.RogueChestMapConfig")
		}
	}
	return nil
}

// parseVideoCaption discovers RPG.GameCore.VideoCaptionConfig paths from
// three excel outputs' CaptionPath field.
func (d *Driver) parseVideoCaption(outDir string) error {
	seen := make(map[string]struct{})
	for _, excel := range []string{"VideoConfig.json", "CutSceneConfig.json", "LoopCGConfig.json"} {
		rows, err := d.readExcelJSON(excel)
		if err != nil {
			continue
		}
		for _, row := range rows {
			p, ok := asString(row["CaptionPath"])
			if !ok || p == "" {
				continue
			}
			seen[p] = struct{}{}
		}
	}
	for p := range seen {
		d.parseConfigPathSilently(outDir, p, "RPG.GameCore.VideoCaptionConfig")
	}
	return nil
}
