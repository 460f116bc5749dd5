// Command kleegraph analyzes a KLEE output directory and writes a
// vulnerability report.
//
//	kleegraph analyze klee-out-0
//	kleegraph klee-out-0 --neo4j-uri bolt://localhost:7687
//	kleegraph check klee-out-0
//
// Store coordinates are read from NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD and
// NEO4J_DATABASE, Redis from REDIS_URL. A .env file in the working directory
// is loaded first.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr, os.LookupEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
