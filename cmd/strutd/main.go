// Package main is the entry point for the strut demo server.
package main

func main() {
	Execute()
}
