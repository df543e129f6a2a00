// Package backend es el backend de administración de referencia: implementa
// los contratos remotos que consume la consola (login, logout, refresh,
// permisos, diccionarios y CRUD de puestos) con el envelope {code,msg,data}.
package backend

import (
	"encoding/json"
	"net/http"
)

// Códigos de negocio del envelope. 0 es éxito.
const (
	CodeOK            = 0
	CodeBadRequest    = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeServerError   = 500
	CodeBadCredential = 1002000000
	CodeUserDisabled  = 1002000001
	CodePostConflict  = 1002005001
)

type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// writeOK responde HTTP 200 con code 0.
func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, envelope{Code: CodeOK, Data: data})
}

// writeFail los errores de negocio viajan con HTTP 200 y code != 0.
func writeFail(w http.ResponseWriter, code int, msg string) {
	writeEnvelope(w, envelope{Code: code, Msg: msg})
}

func writeEnvelope(w http.ResponseWriter, e envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(e)
}
