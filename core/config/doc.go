// Package config provides configuration management for the table reconciler.
//
// It uses Viper to read environment variables, optionally seeded from a
// .env file. Defaults come from the default struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, shutdown timeout
//   - Database: metadata store connection
//   - Storage: MinIO/S3 settings for report export
//   - Log: level and format
//   - Reconcile: strict typing, enrichment, row limit, schema cache TTL
//   - Scheduler: enablement and timezone
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
