package remote

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want Protocol
	}{
		{url: "http://example.com/db.duckdb", want: ProtocolHTTP},
		{url: "https://example.com/db.duckdb", want: ProtocolHTTPS},
		{url: "HTTPS://EXAMPLE.COM/DB.DUCKDB", want: ProtocolHTTPS},
		{url: "s3://bucket/db.duckdb", want: ProtocolS3},
		{url: "S3://bucket/db.duckdb", want: ProtocolS3},
		{url: "gcs://bucket/db.duckdb", want: ProtocolGCS},
		{url: "gs://bucket/db.duckdb", want: ProtocolGCS},
		{url: "azure://account/container/db.duckdb", want: ProtocolAzure},
		{url: "az://account/container/db.duckdb", want: ProtocolAzure},
		{url: "md:my_db", want: ProtocolManaged},
		{url: "/home/user/db.duckdb", want: ProtocolLocal},
		{url: "local.duckdb", want: ProtocolLocal},
		{url: "C:\\data\\db.duckdb", want: ProtocolLocal},
		{url: "  https://example.com/db.duckdb", want: ProtocolHTTPS},
		{url: "", want: ProtocolLocal},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestProtocol_Predicates(t *testing.T) {
	if ProtocolLocal.Remote() {
		t.Error("local classified as remote")
	}
	if !ProtocolS3.ObjectStorage() || !ProtocolGCS.ObjectStorage() || !ProtocolAzure.ObjectStorage() {
		t.Error("cloud schemes not classified as object storage")
	}
	if ProtocolHTTPS.ObjectStorage() {
		t.Error("https classified as object storage")
	}
	if ProtocolManaged.Proxyable() {
		t.Error("managed protocol must never be proxyable")
	}
	if !ProtocolHTTP.Proxyable() || !ProtocolS3.Proxyable() {
		t.Error("http/s3 must be proxyable")
	}
}
