// Package config loads the unisearch configuration with viper.
//
// Values come from a YAML file (unisearch.yaml in the working directory or
// $HOME/.unisearch, or an explicit path) and are overridden by environment
// variables prefixed with UNISEARCH_, dots replaced by underscores:
//
//	UNISEARCH_DATABASE_ENGINE=postgres
//	UNISEARCH_DATABASE_DSN=postgres://localhost/catalog
//
// Example file:
//
//	database:
//	  engine: mysql
//	  dsn: user:pass@tcp(localhost:3306)/catalog
//	search:
//	  order: desc
//	  ignore_case: true
//	  type_key: type
//	sources:
//	  - model: articles
//	    columns: [title, body, comments.body]
//	  - model: clips
//	    columns: [title, description]
//	    full_text: true
//	    mode: natural
package config
