// Package docstore persists named JSON documents as flat files.
//
// Every write is atomic: the value is encoded into a temp file created next
// to the target and renamed over it, so readers never observe a partial
// document. Before a write lands the current file is rotated into a
// numbered archive:
//
//	<root>/settings.json            live document
//	<archive>/settings0.json        version replaced by the latest write
//	<archive>/settings1.json        the one before that
//	...
//	<archive>/settings<keep>.json   oldest retained version
//
// Documents written to the inputs scope rotate under <archive>/inputs/.
//
// There is no cross-process locking. Two writers racing on the same name
// resolve as last writer wins.
package docstore
