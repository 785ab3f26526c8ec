// Command demo is a notebook fixture.
package main

import "fmt"

var greeting = "hello"

// greet prints the greeting.
func greet(name string) {
	fmt.Println(greeting, name)
}

func shout(name string) string {
	return name + "!"
}

// Main block starts here

func main() {
	greet(shout("world"))
}
