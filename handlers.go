package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(appStatus.Export())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Not a websocket handshake", http.StatusBadRequest)
		return
	}

	c := &uiConn{send: make(chan serverMessage, 16), ws: ws}
	uiHub.uiReg <- c
	defer func() {
		uiHub.uiUnReg <- c
	}()
	go c.writer()
	c.reader()
}
