// Package frame models the fixed-role RAMSES-II packet: a verb, a
// two-byte message code, three address fields and a hex payload.
//
// Frames are exchanged with the RF gateway as single text lines, e.g.:
//
//	W --- 18:000730 01:145038 --:------ 2349 007 0107D00000FFFF
//
// The package provides the address codec (device ids are 24-bit values
// split into a 6-bit device type and an 18-bit serial), source/destination
// resolution for the three-address field, the frame validity gate, and the
// correlation headers used to match responses to requests.
package frame
