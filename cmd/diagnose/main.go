package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

// Smoke-tests a running instance end to end: health, sources, and one
// full question/answer workflow with its verdicts.

var baseURL = flag.String("base-url", "http://localhost:3000/api", "API base URL")

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, *baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // workflow runs can take minutes, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	flag.Parse()

	color.Cyan("Starting DocQA Workflow Diagnostic\n")

	// 1. Health
	color.Yellow("\n[1] Health Check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Sources
	color.Yellow("\n[2] List Ingested Sources")
	resp, body, err = sendRequest("GET", "/ingest/v1/sources", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sourcesResp map[string]interface{}
	json.Unmarshal(body, &sourcesResp)
	prettyPrint(sourcesResp)

	// 3. Ask
	question := "What does the ingested documentation say about configuration?"
	if flag.NArg() > 0 {
		question = flag.Arg(0)
	}
	color.Yellow("\n[3] Ask: %s", question)
	resp, body, err = sendRequest("POST", "/chat/v1/ask", map[string]interface{}{
		"question": question,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var askResp struct {
		Data struct {
			RunId      string `json:"run_id"`
			Generation string `json:"generation"`
			Intent     string `json:"intent"`
			IsGrounded string `json:"is_grounded"`
			IsUseful   string `json:"is_useful"`
			Retries    int    `json:"retries_used"`
			Unverified bool   `json:"unverified"`
			Documents  []struct {
				Source  string  `json:"source"`
				Page    int     `json:"page"`
				ChunkId string  `json:"chunk_id"`
				Score   float64 `json:"score"`
			} `json:"documents_used"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &askResp); err != nil {
		color.Red("Unparseable response: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\nRun:     %s\n", askResp.Data.RunId)
	fmt.Printf("Intent:  %s\n", askResp.Data.Intent)
	fmt.Printf("Answer:  %s\n", askResp.Data.Generation)
	fmt.Printf("Retries: %d\n", askResp.Data.Retries)

	color.Yellow("\n[4] Evidence")
	for i, doc := range askResp.Data.Documents {
		fmt.Printf("  [%d] %s p%d (%s) score=%.3f\n", i+1, doc.Source, doc.Page, doc.ChunkId, doc.Score)
	}

	color.Yellow("\n[5] Verdicts")
	if askResp.Data.Unverified {
		color.Red("UNVERIFIED answer (grounded=%s useful=%s)", askResp.Data.IsGrounded, askResp.Data.IsUseful)
	} else {
		color.Green("Verified answer (grounded=%s useful=%s)", askResp.Data.IsGrounded, askResp.Data.IsUseful)
	}
}
