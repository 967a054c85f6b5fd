package config

import (
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the process runs inside a Docker container.
// Detection is based on /.dockerenv. The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}

// ListenHost returns the bind address to listen on. Inside a container a
// loopback bind is unreachable from the host, so it widens to all interfaces.
func ListenHost(bindAddr string, inDocker bool) string {
	if inDocker && isLoopback(bindAddr) {
		return "0.0.0.0"
	}
	return bindAddr
}

// ResolveEndpointForDocker rewrites a loopback LLM endpoint to
// host.docker.internal when inDocker is set, so a model server running on
// the host stays reachable. Unparseable endpoints are returned unchanged.
func ResolveEndpointForDocker(endpoint string, inDocker bool) string {
	if !inDocker {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || !isLoopback(u.Hostname()) {
		return endpoint
	}
	if port := u.Port(); port != "" {
		u.Host = "host.docker.internal:" + port
	} else {
		u.Host = "host.docker.internal"
	}
	return u.String()
}
