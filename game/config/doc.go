// Package config loads game variants from a directory of YAML or JSON files.
//
// Each file describes one variant: board size, number of starting tiles,
// win value and the chance that a spawned tile is a 4. Keys missing from a
// file fall back to the classic rules; the file name (without extension) is
// the variant's id.
//
//	name: big
//	description: Roomy 6x6 board
//	size: 6
//	start_tiles: 3
//	win_value: 8192
//	four_probability: 0.1
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	variant, err := manager.LoadConfig("big")
//	defaultVariant := manager.GetDefault()
//	all, err := manager.ListConfigs()
package config
