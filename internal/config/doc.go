// Package config loads td2chat configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/td2chat/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// API keys are then completed from the legacy INI secrets file (config.cfg
// next to config.toml, [DEFAULT] OPENAI_API_KEY and deepl_api_key) when the
// TOML file leaves them empty, and finally overridden by the OPENAI_API_KEY
// and DEEPL_API_KEY environment variables.
//
// # TOML Format
//
//	log_dir = "~/Documents/TTSK/TrainDriver2/Logs"
//	poll_interval = "5s"
//	monitor_interval = "10s"
//	language = "German"
//	backend = "Deepl"
//	max_lines = 50
//
//	[translation]
//	workers = 4
//	serial_workers = 1
//	preserve_order = true
//
//	[openai]
//	api_key = "sk-..."
//	assistant_id = "asst_..."
//	timeout = "60s"
//
//	[deepl]
//	api_key = "...:fx"
//
//	[logging]
//	path = "~/.local/state/td2chat/td2chat.log"
//	level = "debug"
//
//	[metrics]
//	addr = "127.0.0.1:9464"
//
// Durations use Go syntax ("750ms", "5s"). Tilde expansion is performed on
// every path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, TOML or
// INI syntax errors and invalid durations. Missing files are not errors.
package config
