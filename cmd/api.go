package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumeapp/plume-go/support/logger"
)

const apiExamples = `  plume api --conf ./plume.toml --method GET --path /v1/profile
  plume api --conf ./plume.toml --method POST --path /v1/entries --data '{"title":"hello","body":"world"}'`

var apiCmd = &cobra.Command{
	Use:     "api",
	Short:   "Sends a raw request to the Plume backend",
	Example: apiExamples,
}

func init() {
	confPath := apiCmd.Flags().StringP("conf", "c", "", "(required) client config file path")
	method := apiCmd.Flags().StringP("method", "m", "GET", "http method to use (GET, HEAD, POST, PUT, PATCH, DELETE)")
	path := apiCmd.Flags().StringP("path", "p", "", "(required) request path, needs to begin with a '/'")
	data := apiCmd.Flags().StringP("data", "d", "", "raw json request body")

	e := apiCmd.MarkFlagRequired("conf")
	if e != nil {
		panic(e)
	}
	e = apiCmd.MarkFlagRequired("path")
	if e != nil {
		panic(e)
	}
	apiCmd.Flags().SortFlags = false

	apiCmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()
		cfg := readClientConfig(*confPath)
		p, _ := makePlume(l, cfg)

		httpMethod := strings.ToUpper(*method)
		var requestBody interface{}
		if *data != "" {
			requestBody = *data
		}

		// HEAD and DELETE responses carry no body worth decoding
		wantResponse := httpMethod != http.MethodHead && httpMethod != http.MethodDelete

		var response map[string]interface{}
		var responseData interface{}
		if wantResponse {
			responseData = &response
		}

		e := p.Client().Do(nil, httpMethod, *path, nil, requestBody, responseData)
		if e != nil {
			logger.Fatal(l, fmt.Errorf("request failed: %s", e))
		}

		if !wantResponse {
			fmt.Printf("%s %s succeeded\n", httpMethod, *path)
			return
		}

		jsonBytes, e := json.MarshalIndent(response, "", "  ")
		if e != nil {
			logger.Fatal(l, fmt.Errorf("could not format response: %s", e))
		}
		fmt.Println(string(jsonBytes))
	}
}
