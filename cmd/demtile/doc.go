// Package main hosts the demtile CLI entrypoint and command graph.
//
// The root command extracts every ALOS World 3D archive in the source
// directory into the working directory and organizes the extracted DSM files
// into 10 degree tile directories. Subcommands organize without extracting,
// print tile directories for filenames, and scaffold a configuration file.
package main
