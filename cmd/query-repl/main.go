// cmd/query-repl/main.go
package main

func main() {
	Execute()
}
