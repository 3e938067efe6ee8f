// Package routes maps the HTTP surface onto handlers. Every API route lives
// under the /api prefix.
package routes

const APIPrefix = "/api"
