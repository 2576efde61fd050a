package main

import (
	"db-sync/cmd"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

func main() {
	cmd.Execute()
}
