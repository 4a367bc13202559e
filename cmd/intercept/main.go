package main

import (
	"fmt"
	"os"

	// Import to register the simulation
	_ "github.com/picogrid/interceptor-simulations/cmd/intercept/simulation"
)

func main() {
	fmt.Println("Interceptor simulation registered. Use 'interceptor-sim run' to execute.")
	os.Exit(0)
}
