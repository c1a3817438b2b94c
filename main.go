package main

import "invoicehub/cmd"

// @title           InvoiceHub API
// @version         1.0
// @description     Invoices, PDF rendering and client notifications.

// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cmd.Execute()
}
