// Package ping отвечает на корневой запрос API.
package ping

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/response"
)

// Message текст ответа корневого маршрута.
const Message = "Code Learning Scripter API is running!"

// Handler отвечает фиксированным сообщением.
func Handler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"message": Message}))
}
