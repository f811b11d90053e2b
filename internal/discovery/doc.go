// Package discovery finds gateway daemons on the local network via mDNS.
// Daemons advertise the "_ramses-gw._tcp" service; a scan collects every
// responder, FindFirst returns as soon as one answers.
package discovery
