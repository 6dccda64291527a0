// Package config loads provider settings from HCL files.
//
// A typical settings file may look something like this:
//
//  region         = "eu-west-1"
//  log_level      = "debug"
//  callback_delay = 2
//
//  server {
//    address = "127.0.0.1:8080"
//  }
//
//  retry {
//    max_retries = 5
//    max_elapsed = "2m"
//  }
//
// All settings are optional. Values that are not set fall back to Defaults().
// A retry.max_retries of zero disables retries. A callback_delay of zero is
// the same as not setting it.
package config
