package auth

import (
	"encoding/json"
	"net/http"
)

func jsonDecode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
