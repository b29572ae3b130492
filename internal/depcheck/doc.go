// Package depcheck finds drift between a module's go.mod and the imports
// of its source.
//
// A direct requirement that no scanned file imports is superfluous. An
// imported module that is not a direct requirement, including one only
// listed as indirect, is missing. Missing requirements fail the check;
// superfluous ones only warn.
package depcheck
