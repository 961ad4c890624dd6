// Package main Read-Manga API
//
//	@title						Read-Manga API
//	@version					1.0
//	@description				Manga catalog proxy with accounts and favorites.
//
//	@host						localhost:5000
//	@BasePath					/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Manga
//	@tag.description			Cached catalog reads
//
//	@tag.name					Auth
//	@tag.description			Registration, login and profile
//
//	@tag.name					Favorites
//	@tag.description			Saved manga and reading progress
package main
