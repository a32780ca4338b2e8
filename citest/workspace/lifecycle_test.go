package workspace_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/devopsascode/bit/internal/legacy"
	"github.com/devopsascode/bit/internal/workspace"
)

var _ = Describe("workspace config lifecycle", func() {
	var (
		dir      string
		resolver *workspace.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		resolver = workspace.NewResolver()
		ctx = context.Background()
	})

	It("creates, persists and reloads a config", func() {
		created, err := resolver.Ensure(ctx, dir, map[string]any{
			"workspace": map[string]any{"defaultScope": "acme.platform"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resolver.Write(ctx, created)).To(Succeed())
		Expect(workspace.PathHasBitJSONC(dir)).To(BeTrue())

		loaded, err := resolver.LoadIfExist(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).NotTo(BeNil())
		Expect(loaded.Kind()).To(Equal(workspace.KindWorkspaceJSONC))
		Expect(loaded.Settings().DefaultScope()).To(Equal("acme.platform"))
		Expect(loaded.Settings().ComponentsDefaultDirectory()).To(Equal("components/{name}"))

		By("keeping the template comments on disk")
		written, err := os.ReadFile(workspace.DefaultConfigPath(dir))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(written)).To(ContainSubstring("// the default scope new components are exported to."))
	})

	It("ensure is idempotent once a file is persisted", func() {
		first, err := resolver.Ensure(ctx, dir, map[string]any{
			"workspace": map[string]any{"defaultScope": "acme.one"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resolver.Write(ctx, first)).To(Succeed())

		second, err := resolver.Ensure(ctx, dir, map[string]any{
			"workspace": map[string]any{"defaultScope": "acme.two"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Settings().DefaultScope()).To(Equal("acme.one"))
	})

	It("resolves component config over a legacy workspace", func() {
		legacyDoc := `{
			"env": {"compiler": "bit.envs/compilers/babel", "tester": "bit.envs/testers/jest"},
			"lang": "javascript",
			"overrides": {
				"utils/*": {"env": {"compiler": "bit.envs/compilers/flow"}}
			}
		}`
		Expect(os.WriteFile(filepath.Join(dir, legacy.ConfigFileName), []byte(legacyDoc), 0o644)).To(Succeed())

		cfg, err := resolver.LoadIfExist(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Kind()).To(Equal(workspace.KindLegacy))

		By("override wins over the legacy root env")
		rec := cfg.ComponentConfig("utils/sort")
		Expect(rec.Env.Compiler).To(Equal("bit.envs/compilers/flow"))
		Expect(rec.Env.Tester).To(Equal("bit.envs/testers/jest"))

		By("components with no override inherit the legacy defaults")
		plain := cfg.ComponentConfig("ui/button")
		Expect(plain.Env.Compiler).To(Equal("bit.envs/compilers/babel"))
		Expect(plain.Env.Tester).To(Equal("bit.envs/testers/jest"))

		By("writing back preserves the legacy file untouched")
		Expect(resolver.Write(ctx, cfg)).To(Succeed())
		written, err := os.ReadFile(filepath.Join(dir, legacy.ConfigFileName))
		Expect(err).NotTo(HaveOccurred())
		Expect(written).To(Equal([]byte(legacyDoc)))
	})

	It("reports an invalid modern file without falling back", func() {
		Expect(os.WriteFile(workspace.DefaultConfigPath(dir), []byte("{{{"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, legacy.ConfigFileName), []byte(`{"lang":"js"}`), 0o644)).To(Succeed())

		_, err := resolver.LoadIfExist(ctx, dir)
		var invalid *workspace.InvalidConfigFileError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &invalid)).To(BeTrue())
		Expect(invalid.Path).To(Equal(workspace.DefaultConfigPath(dir)))
	})
})
