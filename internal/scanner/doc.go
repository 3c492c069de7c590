// Package scanner lists photo files and subfolders on the filesystem.
//
// It applies the configured photo extension filter and exclusion substring,
// and skips hidden directories as well as Synology system folders
// (@eaDir, #recycle). The scanner is pure and synchronous: it keeps no
// state and performs no writes.
package scanner
