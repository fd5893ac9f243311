// Command ffgate-stress runs concurrency and leak checks against the ffgate
// allocation registry.
package main

func main() {
	execute()
}
