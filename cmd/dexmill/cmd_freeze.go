// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/dexmill/dex"
	"github.com/AleutianAI/dexmill/naming"
	"github.com/AleutianAI/dexmill/snapshot"
	storebadger "github.com/AleutianAI/dexmill/storage/badger"
)

var freezeFlags struct {
	graphPath   string
	renameMap   string
	snapshotDir string
	runID       string
	verify      bool
}

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Freeze the symbol tables into serialization order",
	Long: `Load a YAML class graph, freeze the interned tables under a naming
lens, and print the resulting index assignment. With --snapshot-dir the
frozen order is persisted (or, with --verify, compared against the
snapshot stored for --run-id).`,
	RunE: runFreeze,
}

func init() {
	freezeCmd.Flags().StringVar(&freezeFlags.graphPath, "graph", "", "path to the YAML class graph (required)")
	freezeCmd.Flags().StringVar(&freezeFlags.renameMap, "rename-map", "", "YAML rename dictionary for the naming lens")
	freezeCmd.Flags().StringVar(&freezeFlags.snapshotDir, "snapshot-dir", "", "BadgerDB directory for order snapshots")
	freezeCmd.Flags().StringVar(&freezeFlags.runID, "run-id", "", "snapshot run ID (default: new UUID)")
	freezeCmd.Flags().BoolVar(&freezeFlags.verify, "verify", false, "verify against the stored snapshot instead of saving")
	_ = freezeCmd.MarkFlagRequired("graph")
}

func runFreeze(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Close()

	factory := dex.NewFactory()
	graph, err := loadClassGraph(factory, freezeFlags.graphPath)
	if err != nil {
		return err
	}
	logger.Info("class graph loaded",
		"path", freezeFlags.graphPath,
		"classes", graph.Size())

	var lens dex.NamingLens = naming.NewIdentityLens()
	if freezeFlags.renameMap != "" {
		dictLens, err := naming.LoadDictionaryLens(freezeFlags.renameMap)
		if err != nil {
			return fmt.Errorf("rename map: %w", err)
		}
		lens = dictLens
	}

	if err := factory.Freeze(cmd.Context(), lens); err != nil {
		return fmt.Errorf("freeze: %w", err)
	}

	for c := dex.Category(0); c < dex.NumCategories; c++ {
		fmt.Printf("%-14s %d\n", c.String()+":", factory.Count(c))
	}

	if freezeFlags.snapshotDir == "" {
		if freezeFlags.verify {
			return fmt.Errorf("--verify requires --snapshot-dir")
		}
		return nil
	}

	cfg := storebadger.DefaultConfig()
	cfg.Path = freezeFlags.snapshotDir
	cfg.Logger = logger.Slog()
	db, err := storebadger.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer db.Close()

	store := snapshot.NewStore(db.DB)

	runID := freezeFlags.runID
	if freezeFlags.verify {
		if runID == "" {
			return fmt.Errorf("--verify requires --run-id")
		}
		if err := store.Verify(runID, factory); err != nil {
			return err
		}
		logger.Info("snapshot verified", "run_id", runID)
		fmt.Printf("snapshot %s verified\n", runID)
		return nil
	}

	if runID == "" {
		runID = uuid.New().String()
	}
	if err := store.Save(runID, factory); err != nil {
		return err
	}
	logger.Info("snapshot saved", "run_id", runID)
	fmt.Printf("snapshot saved as %s\n", runID)
	return nil
}
