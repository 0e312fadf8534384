package main

import "github.com/eleven-am/pose-coach/internal/bootstrap"

// @title Pose Coach API
// @version 1.0.0
// @description Compares exercise videos by pose and returns coaching feedback

// @BasePath /v1

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name Authorization

func main() {
	bootstrap.Run()
}
