package leave_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLeaveRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Repository Suite")
}
