// Package utils hosts the CLI plumbing shared by every procshell command:
// configuration loading through Viper, zap logger construction, flushing output
// writers and values carried on command contexts.
package utils
