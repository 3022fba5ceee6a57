package segment

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "segment")
