// Package config loads the server configuration.
//
// Settings come from spa.json, then from the environment (optionally
// seeded from a .env file), then from command line flags applied by the
// caller.
//
// # Configuration File Structure
//
//	{
//	  "port": 3000,
//	  "dist": "dist",
//	  "errorPage": "/error",
//	  "logEndpoint": "/api/log-error",
//	  "static": {"prefix": "/static", "maxAge": 3600},
//	  "live": {"path": "/_spa/live"},
//	  "reports": {"store": "disk", "dir": "reports"},
//	  "posts": {"source": "random"}
//	}
//
// # Environment
//
//	DIST_PATH, PORT, HOST, SPA_LOG_LEVEL, SPA_LIVE_DISABLED,
//	SPA_REPORT_STORE, SPA_REPORT_CAPACITY, SPA_REPORT_DIR, SPA_REPORT_DSN,
//	SPA_REPORT_BUCKET, SPA_REPORT_PREFIX, SPA_REPORT_REGION,
//	SPA_REPORT_ENDPOINT, SPA_REPORT_PATH_STYLE, SPA_POSTS_SOURCE
//
// # Usage
//
//	if err := config.LoadEnv(); err != nil {
//	    return err
//	}
//	cfg, err := config.LoadOrDefault(".") // nearest spa.json up the tree
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
//	    return err
//	}
package config
