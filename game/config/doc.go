// Package config loads Num Dash level catalogues from a directory.
//
// A catalogue is a JSON or YAML file (configs/<id>.json, .yaml or .yml) holding
// the game's lives, grace period, challenge cap, messages and an ordered list of
// levels. Each level names a rule and optionally its target, plus the grid
// size, glitch count, wall density and glitch speed the generator should use.
//
// Catalogues are validated with engine.ValidateGameConfig when loaded or saved,
// cached by id, and listed with the rules they contain. When the directory holds
// no usable file the built-in engine.DefaultGameConfig is the default.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	classic, err := manager.LoadConfig("classic")
//	infos, err := manager.ListConfigs()
package config
