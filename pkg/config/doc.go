// Package config loads artistgraph settings from a TOML file and the
// environment.
//
// The file is optional. [Load] starts from [Default], decodes the file over
// it when one exists, and then applies environment overrides:
//
//	LASTFM_API_KEY              lastfm.api_key
//	ARTISTGRAPH_MONGO_URI       mongo.uri
//	ARTISTGRAPH_MONGO_DATABASE  mongo.database
//	ARTISTGRAPH_REDIS_URL       redis.url
//	ARTISTGRAPH_ADDR            server.addr
//
// A minimal file:
//
//	[lastfm]
//	api_key = "..."
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//
//	[cache]
//	ttl = "12h"
package config
