package main

import "emploi_backend/internal/app"

func main() {
	app.Run()
}
