package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// readRequests reads handler requests from a file. If filename is "-", the
// requests are read from stdin.
func readRequests(filename string) ([]*handler.Request, error) {
	var r io.Reader = os.Stdin
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read requests")
	}
	return decodeRequests(data, strings.EqualFold(filepath.Ext(filename), ".json"))
}

// decodeRequests decodes a single request or a list of requests. Unless
// isJSON is set, data is decoded as yaml. Resource states may be given as
// nested objects in either format.
func decodeRequests(data []byte, isJSON bool) ([]*handler.Request, error) {
	if !isJSON {
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
		j, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "convert yaml")
		}
		data = j
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, errors.New("no requests")
	}

	var reqs []*handler.Request
	if data[0] == '[' {
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, errors.Wrap(err, "decode requests")
		}
	} else {
		var req handler.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errors.Wrap(err, "decode request")
		}
		reqs = append(reqs, &req)
	}

	for i, req := range reqs {
		if req == nil {
			return nil, errors.Errorf("request %d is empty", i)
		}
		if req.TypeName == "" {
			return nil, errors.Errorf("request %d: typeName not set", i)
		}
		a, ok := handler.ParseAction(string(req.Action))
		if !ok {
			return nil, errors.Errorf("request %d: invalid action %q", i, req.Action)
		}
		req.Action = a
	}
	return reqs, nil
}
