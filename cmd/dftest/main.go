// Package main provides the dftest CLI for validating tabular datasets against column rules.
package main

func main() {
	Execute()
}
