// Package config defines the gateway's configuration model and loading
// pipeline.
//
// Configuration is layered, later layers winning:
//
//  1. Built-in defaults
//  2. YAML file (optional; a missing file is not an error)
//  3. GATEWAY_* environment variables
//  4. Legacy API_HOST / API_PORT environment variables, kept for
//     compatibility with existing dashboard deployments
//
// The final configuration is validated before use. A file watcher can
// hot-reload the file layer at runtime; reload failures keep the
// previous configuration.
package config
