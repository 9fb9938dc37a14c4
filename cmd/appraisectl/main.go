// appraisectl is a small operator CLI that posts questions or photos to a
// running appraisal server and pretty-prints the response.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	question  string
	extraCtx  string
	depth     string
	filePath  string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "appraisectl",
		Short: "Query a collectibles appraisal server",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8787", "server base URL")

	askCmd := &cobra.Command{
		Use:   "ask",
		Short: "Appraise from a text question",
		RunE:  runAsk,
	}
	askCmd.Flags().StringVarP(&question, "question", "q", "", "question describing the item (required)")
	askCmd.Flags().StringVar(&extraCtx, "context", "", "additional free-text context")
	askCmd.Flags().StringVar(&depth, "depth", "", "pipeline depth: full or minimal")
	_ = askCmd.MarkFlagRequired("question")

	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Appraise from a photo",
		RunE:  runUpload,
	}
	uploadCmd.Flags().StringVarP(&filePath, "file", "f", "", "image file to upload (required)")
	_ = uploadCmd.MarkFlagRequired("file")

	root.AddCommand(askCmd, uploadCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	payload, err := json.Marshal(map[string]string{
		"question": question,
		"context":  extraCtx,
		"depth":    depth,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(serverURL+"/api/ask", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func runUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	fileName := filepath.Base(filePath)
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(serverURL+"/api/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}
