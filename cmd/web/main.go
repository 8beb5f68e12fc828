package main

import "membership_backend/internal/app"

func main() {
	app.Run()
}
