// Package config loads settings for the CDN command-line client.
//
// Values come from built-in defaults, then an optional JSON file named with
// -c or -config, then flags:
//
//	-a string   base URL of the CDN server (default http://127.0.0.1:8000)
//	-i int      request timeout in seconds (default 30)
//
// JSON keys:
//
//	{
//	  "server_url": "https://cdn.example.com",
//	  "request_timeout": "30s"
//	}
package config
