package controllers

import (
	"encoding/json"
	"net/http"

	"nevilwatch/devicestatus"
)

// StatusController exposes the latest device-status samples
type StatusController struct {
	Monitor *devicestatus.Monitor
}

// NewStatusController creates a new StatusController
func NewStatusController(monitor *devicestatus.Monitor) *StatusController {
	return &StatusController{Monitor: monitor}
}

// GetStatus returns the latest network, battery and light readings
func (sc *StatusController) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sc.Monitor.Report())
}
