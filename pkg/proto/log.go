package proto

import "src.protosketch.dev/pkg/logutil"

var logger = logutil.GetLogger("[proto] ")
