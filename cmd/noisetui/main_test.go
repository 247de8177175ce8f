package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("period", 15, "")
	cmd.Flags().String("unit", "min", "")
	return cmd
}

func TestConfigFillsUnsetFlags(t *testing.T) {
	cmd := newFlagCmd()
	period := 15
	unit := "min"
	filePeriod := 30
	fileUnit := "h"
	applyIntConfig(cmd, "period", &period, &filePeriod)
	applyStringConfig(cmd, "unit", &unit, &fileUnit)
	if period != 30 || unit != "h" {
		t.Fatalf("config values must fill unset flags, got %d %q", period, unit)
	}
}

func TestChangedFlagBeatsConfig(t *testing.T) {
	cmd := newFlagCmd()
	if err := cmd.Flags().Set("period", "5"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	period := 5
	filePeriod := 30
	applyIntConfig(cmd, "period", &period, &filePeriod)
	if period != 5 {
		t.Fatalf("a changed flag must override config, got %d", period)
	}
}

func TestNilConfigLeavesDefault(t *testing.T) {
	cmd := newFlagCmd()
	period := 15
	applyIntConfig(cmd, "period", &period, nil)
	if period != 15 {
		t.Fatalf("nil config value must leave the default, got %d", period)
	}
}
