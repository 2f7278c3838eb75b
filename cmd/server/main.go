package main

import "hrimport/internal/app/server"

func main() {
	server.Run()
}
