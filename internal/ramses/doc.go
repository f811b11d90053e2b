// Package ramses holds the static protocol tables: which message codes
// exist, which payload shapes each (code, verb) pair accepts, which device
// types may send or receive which codes, and the enumeration maps used by
// the payload parsers (zone/system modes, fault-log fields, zone types,
// device classes, fan states).
//
// The code and device tables live in an embedded YAML file so they can be
// reviewed and extended without touching Go code; they are parsed once at
// package init.
package ramses
