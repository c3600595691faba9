package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

func newUiRouter(sim *SimSensor) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		b, _ := json.Marshal(sim.Status())
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}).Methods(http.MethodGet)

	r.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			postbody, errRead := io.ReadAll(r.Body)
			if errRead != nil {
				http.Error(w, fmt.Sprintf("Reading POST request failed %v", errRead.Error()), http.StatusBadRequest)
				return
			}
			mod := SensorModel{}
			if errMarsh := json.Unmarshal(postbody, &mod); errMarsh != nil {
				http.Error(w, fmt.Sprintf("Invalid payload %v", errMarsh.Error()), http.StatusBadRequest)
				return
			}
			fmt.Printf("updating model to %#v\n", mod)
			sim.SetModel(mod)
		}

		//Report response
		b, _ := json.Marshal(sim.Model())
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}).Methods(http.MethodGet, http.MethodPost)

	return r
}
