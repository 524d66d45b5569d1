package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/source"
	"github.com/temirov/uptree/internal/tree"
)

func writeFile(t *testing.T, filePath, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filePath, err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", filePath, err)
	}
}

func relativePaths(entries []tree.Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.RelativePath)
	}
	return paths
}

func readEntry(t *testing.T, entry tree.Entry) string {
	t.Helper()
	reader, err := entry.Handle.Open(context.Background())
	if err != nil {
		t.Fatalf("open %s: %v", entry.RelativePath, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read %s: %v", entry.RelativePath, err)
	}
	return string(data)
}

func TestDirectoryListsPickerStylePaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	writeFile(t, filepath.Join(root, "README.md"), "readme")
	writeFile(t, filepath.Join(root, "src", "app.ts"), "app")
	writeFile(t, filepath.Join(root, "src", "utils", "helper.ts"), "helper")
	writeFile(t, filepath.Join(root, "dist", "bundle.js"), "bundle")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref")
	writeFile(t, filepath.Join(root, "debug.log"), "log")
	writeFile(t, filepath.Join(root, ".ignore"), "dist/\n*.log\n[binary]\nassets/\n")

	listing, err := source.Directory(root, source.DirectoryOptions{Ignore: config.IgnoreOptions{UseIgnoreFile: true}})
	if err != nil {
		t.Fatalf("Directory error: %v", err)
	}
	expected := []string{"demo/README.md", "demo/src/app.ts", "demo/src/utils/helper.ts"}
	if got := relativePaths(listing.Entries); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if !reflect.DeepEqual(listing.BinaryContentPatterns, []string{"demo/assets/"}) {
		t.Fatalf("unexpected binary patterns %v", listing.BinaryContentPatterns)
	}
	if size := listing.Entries[2].Handle.Size(); size != int64(len("helper")) {
		t.Fatalf("unexpected size %d", size)
	}
	if content := readEntry(t, listing.Entries[1]); content != "app" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestDirectoryRejectsFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, filePath, "x")
	if _, err := source.Directory(filePath, source.DirectoryOptions{}); err == nil {
		t.Fatalf("expected an error for a file root")
	}
}

func TestBytesEntry(t *testing.T) {
	entry := source.Bytes("p/a.txt", []byte("abc"))
	if entry.Handle.Size() != 3 || readEntry(t, entry) != "abc" {
		t.Fatalf("unexpected bytes entry")
	}
}

func TestParseS3Location(t *testing.T) {
	testCases := []struct {
		input    string
		expected source.S3Location
		invalid  bool
	}{
		{input: "bucket", expected: source.S3Location{Bucket: "bucket"}},
		{input: "bucket/projects/demo/", expected: source.S3Location{Bucket: "bucket", Prefix: "projects/demo"}},
		{input: "s3://bucket/demo", expected: source.S3Location{Bucket: "bucket", Prefix: "demo"}},
		{input: "s3:///demo", invalid: true},
		{input: "", invalid: true},
	}
	for _, testCase := range testCases {
		location, err := source.ParseS3Location(testCase.input)
		if testCase.invalid {
			if !errors.Is(err, source.ErrInvalidLocation) {
				t.Fatalf("%q: expected ErrInvalidLocation, got %v", testCase.input, err)
			}
			continue
		}
		if err != nil || location != testCase.expected {
			t.Fatalf("%q: expected %+v, got %+v (%v)", testCase.input, testCase.expected, location, err)
		}
	}
}

type fakeS3 struct {
	pages   [][]s3types.Object
	objects map[string]string
	calls   int
	gets    int
}

func (client *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := client.pages[client.calls]
	client.calls++
	output := &s3.ListObjectsV2Output{Contents: page, IsTruncated: aws.Bool(client.calls < len(client.pages))}
	if client.calls < len(client.pages) {
		output.NextContinuationToken = aws.String("next")
	}
	return output, nil
}

func (client *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	client.gets++
	body, exists := client.objects[aws.ToString(params.Key)]
	if !exists {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func object(key string, size int64) s3types.Object {
	return s3types.Object{Key: aws.String(key), Size: aws.Int64(size)}
}

func TestS3ListsEveryPageLazily(t *testing.T) {
	client := &fakeS3{
		pages: [][]s3types.Object{
			{object("projects/demo/", 0), object("projects/demo/src/app.ts", 3)},
			{object("projects/demo/README.md", 6)},
		},
		objects: map[string]string{"projects/demo/src/app.ts": "app", "projects/demo/README.md": "readme"},
	}
	listing, err := source.S3(context.Background(), client, source.S3Location{Bucket: "bucket", Prefix: "projects/demo"})
	if err != nil {
		t.Fatalf("S3 error: %v", err)
	}
	expected := []string{"demo/src/app.ts", "demo/README.md"}
	if got := relativePaths(listing.Entries); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if client.gets != 0 {
		t.Fatalf("listing must not fetch objects")
	}
	if listing.Entries[1].Handle.Size() != 6 || readEntry(t, listing.Entries[1]) != "readme" {
		t.Fatalf("unexpected README entry")
	}
}

func TestS3BucketRootUsesBucketName(t *testing.T) {
	client := &fakeS3{pages: [][]s3types.Object{{object("a.txt", 1)}}, objects: map[string]string{}}
	listing, err := source.S3(context.Background(), client, source.S3Location{Bucket: "bucket"})
	if err != nil {
		t.Fatalf("S3 error: %v", err)
	}
	if got := relativePaths(listing.Entries); !reflect.DeepEqual(got, []string{"bucket/a.txt"}) {
		t.Fatalf("unexpected paths %v", got)
	}
	if _, openError := listing.Entries[0].Handle.Open(context.Background()); openError == nil {
		t.Fatalf("expected a missing object to fail on open")
	}
}
