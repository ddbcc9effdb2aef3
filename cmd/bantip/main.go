// Package main provides the bantip CLI: it runs the Banano tip bot and
// offers a few operator tools around its configuration.
package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/bantip"
	"github.com/complex-gh/bantip/internal/banano"
	"github.com/complex-gh/bantip/internal/bot"
	"github.com/complex-gh/bantip/internal/config"
	"github.com/complex-gh/bantip/internal/logging"
	"github.com/complex-gh/bantip/internal/node"
	"github.com/complex-gh/bantip/internal/wallet"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
	"go.uber.org/zap"
	"golang.org/x/term"
	lang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	maxWidth  = 72
	queueSize = 64
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	yellow     = lipgloss.Color(completeColor("#DBA250", "179", "3"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd
	valueStyle = baseStyle.Foreground(yellow)

	configPath   string
	overridePath string
	envPath      string
	promptToken  bool
	showWords    bool
	language     string

	rootCmd = &cobra.Command{
		Use:   "bantip",
		Short: "A Banano tip bot for Discord",
		Long: `A Banano tip bot for Discord.

Every Discord user gets a Banano account derived from their user id and
the discordIdSeed of the configuration, so the bot keeps no user database.
The bot receives pending transfers before any command that reads or moves
a balance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		Example: `  bantip run
  bantip run --config config.json --override ../config.json
  BANTIP_TOKEN=... bantip run`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, overridePath, envPath)
			if err != nil {
				return err
			}
			logger, err := logging.Init(logging.Config{Level: cfg.Log.Level, Dev: cfg.Log.Dev})
			if err != nil {
				return fmt.Errorf("could not create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			walletAccount, err := banano.AccountFromSeed(cfg.WalletSeed, wallet.SeedIndex)
			if err != nil {
				return fmt.Errorf("could not derive wallet account: %w", err)
			}

			client := node.New(cfg.BananodeAPIURL, node.WithLogger(logger.Named("node")))
			w, err := wallet.New(client,
				wallet.WithRemoteWork(cfg.Work.Remote),
				wallet.WithWorkers(cfg.Work.Workers),
				wallet.WithLogger(logger.Named("wallet")),
			)
			if err != nil {
				return err
			}

			discord, err := bot.NewDiscord(cfg.Token, logger.Named("discord"))
			if err != nil {
				return err
			}
			b := bot.New(bot.Config{
				Prefix:         cfg.BotPrefix,
				Emoji:          cfg.BotEmoji,
				Representative: walletAccount,
				Drain: bantip.DrainOptions{
					MaxPending:    cfg.MaxPendingBananos,
					MaxIterations: cfg.Drain.MaxIterations,
					Timeout:       cfg.Drain.Timeout,
				},
			}, bantip.NewDeriver(cfg.Salt()), w, discord, discord, logger.Named("bot"))

			q := bot.NewQueue(queueSize, logger.Named("queue"))
			discord.Attach(b, q)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := discord.Open(); err != nil {
				return err
			}
			logger.Info("started",
				zap.String("wallet", walletAccount),
				zap.String("api", cfg.BananodeAPIURL),
				zap.String("prefix", cfg.BotPrefix),
			)

			q.Run(ctx)

			logger.Info("closing")
			if err := discord.Close(); err != nil {
				return fmt.Errorf("could not close discord session: %w", err)
			}
			logger.Info("closed")
			return nil
		},
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a new config file with fresh seeds",
		Long: `Write a new config file with a random walletSeed and discordIdSeed.

An existing file is never overwritten: both seeds own funds, and losing the
discordIdSeed loses every user account.`,
		Example: `  bantip init
  bantip init --config config.json --prompt-token`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			var token string
			if promptToken {
				t, err := readPassword("Discord bot token: ")
				_, _ = fmt.Fprintln(os.Stderr)
				if err != nil {
					return err
				}
				token = strings.TrimSpace(string(t))
			}
			if err := config.Generate(configPath, token, rand.Reader); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return fmt.Errorf("config file already exists: %s", configPath)
				}
				return err
			}
			fmt.Printf("created new config file: %s\n", configPath)
			return nil
		},
	}

	deriveCmd = &cobra.Command{
		Use:   "derive <user-id>",
		Short: "Print the secret and account of a Discord user",
		Long: `Print the wallet secret and Banano account the bot derives for a
Discord user id, for answering support requests.

With --mnemonic the secret is also shown as a 24 word phrase that Banano
wallets can import.`,
		Example: `  bantip derive 123456789012345678
  bantip derive 123456789012345678 --mnemonic --language spanish`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, overridePath, envPath)
			if err != nil {
				return err
			}
			secret, err := bantip.DeriveSecret(cfg.Salt(), args[0])
			if err != nil {
				return err
			}
			seed, err := banano.ParseSeed(secret)
			if err != nil {
				return err
			}
			account, err := banano.AccountFromSeed(secret, wallet.SeedIndex)
			if err != nil {
				return err
			}

			out := os.Stdout
			styled := isatty.IsTerminal(out.Fd())
			printValue(out, styled, "secret", secret)
			printValue(out, styled, "account", account)

			if showWords {
				if err := setLanguage(language); err != nil {
					return err
				}
				words, err := banano.Mnemonic(seed)
				if err != nil {
					return err
				}
				printValue(out, styled, "mnemonic", words)
			}
			return nil
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for bantip.

To load completions:

Bash:
  $ source <(bantip completion bash)

Zsh:
  $ bantip completion zsh > "${fpath[1]}/_bantip"

Fish:
  $ bantip completion fish | source

PowerShell:
  PS> bantip completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Base config file")
	for _, c := range []*cobra.Command{runCmd, deriveCmd} {
		c.Flags().StringVar(&overridePath, "override", "../config.json", "Optional config file merged over the base file")
		c.Flags().StringVar(&envPath, "env", ".env", "Optional env file for BANTIP_* and LOG_* variables")
	}
	initCmd.Flags().BoolVar(&promptToken, "prompt-token", false, "Ask for the Discord bot token without echoing it")
	deriveCmd.Flags().BoolVar(&showWords, "mnemonic", false, "Also print the secret as a 24 word phrase")
	deriveCmd.Flags().StringVarP(&language, "language", "l", "en", "Language of the phrase")
	rootCmd.AddCommand(runCmd, initCmd, deriveCmd, manCmd, completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError shows err in the error style on terminals and as plain text
// otherwise.
func printError(err error) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	b := strings.Builder{}
	b.WriteRune('\n')
	renderBlock(&b, errorStyle, getWidth(maxWidth), err.Error())
	_, _ = fmt.Fprint(os.Stderr, b.String())
}

func printValue(w io.Writer, styled bool, name, value string) {
	if !styled {
		_, _ = fmt.Fprintf(w, "%s: %s\n", name, value)
		return
	}
	_, _ = fmt.Fprintf(w, "[%s]\n\n", name)
	renderBlock(w, valueStyle, getWidth(maxWidth), value)
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}

func setLanguage(language string) error {
	list := getWordlist(language)
	if list == nil {
		return fmt.Errorf("this language is not supported")
	}
	bip39.SetWordList(list)
	return nil
}

func sanitizeLang(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

var wordLists = map[lang.Tag][]string{
	lang.Chinese:              wordlists.ChineseSimplified,
	lang.SimplifiedChinese:    wordlists.ChineseSimplified,
	lang.TraditionalChinese:   wordlists.ChineseTraditional,
	lang.Czech:                wordlists.Czech,
	lang.AmericanEnglish:      wordlists.English,
	lang.BritishEnglish:       wordlists.English,
	lang.English:              wordlists.English,
	lang.French:               wordlists.French,
	lang.Italian:              wordlists.Italian,
	lang.Japanese:             wordlists.Japanese,
	lang.Korean:               wordlists.Korean,
	lang.Spanish:              wordlists.Spanish,
	lang.EuropeanSpanish:      wordlists.Spanish,
	lang.LatinAmericanSpanish: wordlists.Spanish,
}

func getWordlist(language string) []string {
	language = sanitizeLang(language)
	tag := lang.Make(language)
	en := display.English.Languages() // default language name matcher
	for t := range wordLists {
		if sanitizeLang(en.Name(t)) == language {
			tag = t
			break
		}
	}
	if tag == lang.Und { // Unknown language
		return nil
	}
	base, _ := tag.Base()
	btag := lang.MustParse(base.String())
	wl := wordLists[tag]
	if wl == nil {
		return wordLists[btag]
	}
	return wl
}

func readPassword(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open tty: %w", err)
	}
	defer t.Close()                                     //nolint: errcheck
	pass, err := term.ReadPassword(int(t.Input().Fd())) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read token: %w", err)
	}
	return pass, nil
}
