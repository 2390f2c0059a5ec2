package server

//go:generate swag init -g internal/server/server.go -o docs

// @title PageGrade API
// @version 0.1
// @description Audits a web page and produces a reproducible 0-100 quality score with categorized findings.
// @contact.name PageGrade Maintainers
// @contact.url https://github.com/pagegrade/pagegrade
// @BasePath /
