//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("RASCH_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

// TestAnalysisJourneyIntegration drives a running raschd: register, upload a
// CSV, submit an analysis, poll it and download the export.
func TestAnalysisJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	email := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	var registerResp struct {
		Token    string `json:"token"`
		TenantID string `json:"tenant_id"`
	}
	doRequest(t, client, http.MethodPost, base+"/api/auth/register", "", "application/json", mustJSON(t, map[string]string{
		"email":       email,
		"password":    "Secret123!",
		"tenant_name": "Integration",
	}), &registerResp)
	if registerResp.Token == "" || registerResp.TenantID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}
	token := registerResp.Token

	csv := "Student;Q1;Q2;Q3;Q4;Q5\n" +
		"Anna;1;1;1;1;0\n" +
		"Boris;1;1;1;0;0\n" +
		"Clara;1;1;0;1;0\n" +
		"Dmitri;1;0;1;0;0\n" +
		"Eva;0;1;0;0;1\n" +
		"Fedor;1;0;0;0;0\n"
	var dataset struct {
		ID    string `json:"id"`
		Items int    `json:"items"`
	}
	doRequest(t, client, http.MethodPost, base+"/api/datasets?name=integration", token, "text/csv", []byte(csv), &dataset)
	if dataset.ID == "" || dataset.Items != 5 {
		t.Fatalf("unexpected dataset: %+v", dataset)
	}

	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	doRequest(t, client, http.MethodPost, base+"/api/datasets/"+dataset.ID+"/analyses", token, "", nil, &job)
	if job.ID == "" {
		t.Fatalf("expected analysis id")
	}

	deadline := time.Now().Add(10 * time.Second)
	for job.Status != "done" {
		if job.Status == "failed" || time.Now().After(deadline) {
			t.Fatalf("analysis did not finish: %+v", job)
		}
		time.Sleep(100 * time.Millisecond)
		doRequest(t, client, http.MethodGet, base+"/api/analyses/"+job.ID, token, "", nil, &job)
	}

	var summary struct {
		Persons []struct {
			Label string `json:"label"`
		} `json:"persons"`
		Items []struct {
			InfitMNSQ float64 `json:"infit_mnsq"`
		} `json:"items"`
	}
	doRequest(t, client, http.MethodGet, base+"/api/analyses/"+job.ID+"/summary", token, "", nil, &summary)
	if len(summary.Persons) != 6 || len(summary.Items) != 5 || summary.Persons[0].Label != "Anna" {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	data := doRequest(t, client, http.MethodGet, base+"/api/analyses/"+job.ID+"/export?format=full", token, "", nil, nil)
	if !strings.Contains(string(data), "Fedor") {
		t.Fatalf("export did not contain person label; csv=%s", data)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return b
}

func doRequest(t *testing.T, client *http.Client, method, url, token, contentType string, body []byte, out any) []byte {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
	return data
}
