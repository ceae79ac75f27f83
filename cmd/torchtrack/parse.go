package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/torchtrack/torchtrack/internal/domain"
	"github.com/torchtrack/torchtrack/internal/gamelog"
)

var parseRaw bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a log file once and print events as JSON lines",
	Long: `Read a complete game log file, classify every line and print the
extracted events as JSON lines, one event per line, in file order.

Lines that match no pattern are dropped silently, same as in watch mode.

Examples:
  torchtrack parse game.log
  torchtrack parse game.log | jq 'select(.kind == "bag")'`,
	Args: cobra.ExactArgs(1),
	RunE: runParseFile,
}

func init() {
	parseCmd.Flags().BoolVar(&parseRaw, "raw", false,
		"Include the verbatim source line in output")
}

func runParseFile(cmd *cobra.Command, args []string) error {
	reader := gamelog.NewReader(args[0])
	lines, err := reader.ReadAllLines()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	for _, ev := range gamelog.ParseLines(lines) {
		if err := enc.Encode(eventJSON(ev, parseRaw)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

// eventJSON flattens an event into a JSON-friendly map with a kind tag.
func eventJSON(ev domain.Event, includeRaw bool) map[string]any {
	m := map[string]any{"kind": ev.Kind()}

	switch e := ev.(type) {
	case domain.BagEvent:
		m["page_id"] = e.PageID
		m["slot_id"] = e.SlotID
		m["config_base_id"] = e.ConfigBaseID
		m["num"] = e.Num
		m["is_init"] = e.IsInit
	case domain.ContextMarker:
		m["proto_name"] = e.ProtoName
		m["is_start"] = e.IsStart
	case domain.LevelEvent:
		m["event_type"] = e.EventType
		m["level_info"] = e.LevelInfo
	case domain.LevelIDEvent:
		m["level_uid"] = e.LevelUID
		m["level_type"] = e.LevelType
		m["level_id"] = e.LevelID
	case domain.PlayerDataEvent:
		if e.Name != "" {
			m["name"] = e.Name
		}
		if e.Level != 0 {
			m["level"] = e.Level
		}
		if e.SeasonID != 0 {
			m["season_id"] = e.SeasonID
		}
		if e.HeroID != 0 {
			m["hero_id"] = e.HeroID
		}
		if e.PlayerID != 0 {
			m["player_id"] = e.PlayerID
		}
	case domain.ViewEvent:
		m["view_id"] = e.ViewID
		m["view_name"] = e.ViewName
	case domain.ContractSettingEvent:
		m["contract_name"] = e.ContractName
	}

	if includeRaw {
		m["raw_line"] = ev.Raw()
	}
	return m
}
