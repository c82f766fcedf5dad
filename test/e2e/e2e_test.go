//go:build e2e
// +build e2e

/*
Copyright 2025 Lumina Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nextdoor/ami-inventory/test/utils"
)

// unregisteredImageID is launched from in the fixtures but never registered.
const unregisteredImageID = "ami-00000000deadbeef"

// imageEntry mirrors one image of the JSON report.
type imageEntry struct {
	ImageDescription *string
	ImageName        *string
	ImageLocation    *string
	OwnerId          *string //nolint:revive
	InstanceIds      []string
}

type regionInventory map[string]map[string]imageEntry

// runInventory runs the CLI against LocalStack and returns stdout, stderr and
// the exit code.
func runInventory(extraEnv []string, args ...string) (string, string, int) {
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(utils.LocalStackEnv(localStackEndpoint), extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else {
		Expect(err).NotTo(HaveOccurred())
	}
	_, _ = GinkgoWriter.Write(stderr.Bytes())
	return stdout.String(), stderr.String(), exitCode
}

var _ = Describe("ami-inventory", Ordered, func() {
	regionsEnv := []string{"AMI_INVENTORY_REGIONS=us-east-1,us-west-2"}

	Context("JSON report", func() {
		var report regionInventory

		BeforeAll(func() {
			stdout, _, exitCode := runInventory(regionsEnv)
			Expect(exitCode).To(Equal(0))
			Expect(json.Unmarshal([]byte(stdout), &report)).To(Succeed())
		})

		It("should report every allowlisted region", func() {
			Expect(report).To(HaveKey("us-east-1"))
			Expect(report).To(HaveKey("us-west-2"))
		})

		It("should group seeded instances under the image they were launched from", func() {
			for region, images := range seeded.Instances {
				Expect(report).To(HaveKey(region))
				for imageID, instanceIDs := range images {
					Expect(report[region]).To(HaveKey(imageID), "image %s missing in %s", imageID, region)
					Expect(report[region][imageID].InstanceIds).To(ContainElements(instanceIDs))
				}
			}
		})

		It("should resolve metadata of registered images", func() {
			web := report["us-east-1"][seeded.Images["web"]]
			Expect(web.ImageName).NotTo(BeNil())
			Expect(*web.ImageName).To(Equal("ami-inventory-web"))
			Expect(web.ImageDescription).NotTo(BeNil())
			Expect(*web.ImageDescription).To(Equal("Web tier image"))

			worker := report["us-west-2"][seeded.Images["worker"]]
			Expect(worker.ImageName).NotTo(BeNil())
			Expect(*worker.ImageName).To(Equal("ami-inventory-worker"))
		})

		It("should keep unregistered images with null metadata", func() {
			orphan, ok := report["us-west-2"][unregisteredImageID]
			Expect(ok).To(BeTrue())
			Expect(orphan.ImageName).To(BeNil())
			Expect(orphan.ImageDescription).To(BeNil())
			Expect(orphan.ImageLocation).To(BeNil())
			Expect(orphan.OwnerId).To(BeNil())
			Expect(orphan.InstanceIds).NotTo(BeEmpty())
		})
	})

	It("should honor the region allowlist", func() {
		stdout, _, exitCode := runInventory([]string{"AMI_INVENTORY_REGIONS=us-west-2"})
		Expect(exitCode).To(Equal(0))

		var report regionInventory
		Expect(json.Unmarshal([]byte(stdout), &report)).To(Succeed())
		Expect(report).To(HaveLen(1))
		Expect(report).To(HaveKey("us-west-2"))
	})

	It("should write YAML when asked", func() {
		stdout, _, exitCode := runInventory(regionsEnv, "--output", "yaml")
		Expect(exitCode).To(Equal(0))
		Expect(stdout).To(ContainSubstring("ImageName: ami-inventory-web"))
	})

	It("should export metrics to a textfile", func() {
		path := filepath.Join(GinkgoT().TempDir(), "ami_inventory.prom")
		_, _, exitCode := runInventory(regionsEnv, "--metrics-textfile", path)
		Expect(exitCode).To(Equal(0))

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring(`ami_inventory_region_success{region="us-east-1"} 1`))
		Expect(string(content)).To(ContainSubstring(`ami_inventory_region_success{region="us-west-2"} 1`))
	})

	It("should exit 1 with a one-line error when regions cannot be listed", func() {
		stdout, stderr, exitCode := runInventory([]string{
			"AMI_INVENTORY_ENDPOINT_URL=http://127.0.0.1:1",
			"AMI_INVENTORY_MAX_RETRIES=1",
			"AMI_INVENTORY_LOG_LEVEL=error",
		})
		Expect(exitCode).To(Equal(1))
		Expect(stdout).To(BeEmpty())

		lines := strings.Split(strings.TrimSpace(stderr), "\n")
		Expect(lines[len(lines)-1]).To(HavePrefix("Error: "))
		Expect(lines[len(lines)-1]).To(ContainSubstring("failed to list regions"))
	})
})
