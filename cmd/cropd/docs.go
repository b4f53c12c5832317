package main

// General API documentation for swaggo. Regenerate docs with `swag init -g cmd/cropd/docs.go -o docs`.
//
// @title           croprec API
// @version         1.0
// @description     Crop recommendation predictions over pre-trained models.
//
// @contact.name   croprec maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
