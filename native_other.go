//go:build !((darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64))

package ffgate

import "github.com/obinnaokechukwu/ffgate/registry"

func forgetNative(registry.Entry) {}
