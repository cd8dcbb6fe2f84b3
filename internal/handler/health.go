package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint polled by load balancers and the POS
// terminals' connectivity indicator.  It answers with a small JSON body
// and an HTTP 200 status code; it does not touch the database.
func Health(c echo.Context) error { // Health handler signature accepts an echo context and returns an error
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"}) // report liveness with a 200 OK status
}
