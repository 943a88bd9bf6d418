package cmd

import (
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/kirsrus/7zlist/pkg/sevenz"
	"github.com/kirsrus/7zlist/pkg/tools"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ginlogrus "github.com/toorop/gin-logrus"
)

const defaultPort = 4309

var serveCmd = &cobra.Command{
	Use:   "serve <7z_listing_file>",
	Short: "Публикует дерево файлов листинга через WEB-интерфейс",
	Args:  cobra.ExactArgs(1),
	RunE:  serveRunE,
}

func init() {
	serveCmd.Flags().Int("port", defaultPort, "порт WEB-сервера")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func serveRunE(_ *cobra.Command, args []string) error {
	gitVersion = strings.TrimSpace(gitVersion)
	onlyLog = true

	log, closeLog := setupLog()
	defer closeLog()

	// Порт WEB-сервера
	webPort := cast.ToInt(viper.Get("port"))
	if webPort <= 0 || webPort > 65535 {
		return errors.Errorf("указан некорректный порт WEB-сервера '%v'", viper.Get("port"))
	}

	listing, err := sevenz.NewListing(args[0], log)
	if err != nil {
		return errors.Trace(err)
	}

	currLogLevel := log.Level
	log.Level = logrus.InfoLevel
	for _, v := range tools.LogInfoWidget(bannerText(listing, webPort), "*") {
		log.Info(v)
	}
	log.Level = currLogLevel

	gin.SetMode(gin.ReleaseMode)
	webRouter, err := newRouter(listing, log, templates)
	if err != nil {
		return errors.Trace(err)
	}

	webServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", webPort),
		Handler: webRouter,
	}

	log.Infof("WEB-сервер запущен на порту http://127.0.0.1:%d", webPort)
	if err = webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Trace(err)
	}
	return nil
}

// bannerText формирует приветствие со ссылками на WEB-интерфейс по всем частным адресам
func bannerText(listing *sevenz.Listing, webPort int) []string {
	summary := listing.Summary()

	logText := []string{
		fmt.Sprintf("%s %s (%s) %s @ %s", product, gitVersion, shortCommit(gitCommit), gitDate, copyright),
		"",
		fmt.Sprintf("Листинг '%s': директорий %d, файлов %d", filepath.Base(listing.Path), summary.Directories, summary.Files),
		"",
		"Доступ к WEB-интерфейсу:",
		"",
		fmt.Sprintf("  http://127.0.0.1:%d", webPort),
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		_, _ = fmt.Fprint(os.Stderr, err.Error())
		return logText
	}

	for _, v := range interfaces {
		if v.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := v.Addrs()
		if err != nil {
			_, _ = fmt.Fprint(os.Stderr, err.Error())
			continue
		}

		for _, z := range addrs {
			if ipRaw, ok := z.(*net.IPNet); !ok {
				_, _ = fmt.Fprintf(os.Stderr, "error decode addr %v", z)
				continue
			} else if ipRaw.IP.IsPrivate() && ipRaw.IP.To4() != nil {
				logText = append(logText, fmt.Sprintf("  http://%s:%d", ipRaw.IP.To4().String(), webPort))
			}
		}
	}

	return logText
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[0:7]
	}
	return commit
}

// newRouter создаёт обработчики WEB-интерфейса для листинга
func newRouter(listing *sevenz.Listing, log *logrus.Logger, tpl Template) (*gin.Engine, error) {
	indexTpl, err := template.New("index").Parse(tpl.Index)
	if err != nil {
		return nil, errors.Annotate(err, "шаблон index")
	}
	treeTpl, err := template.New("tree").Parse(tpl.Tree)
	if err != nil {
		return nil, errors.Annotate(err, "шаблон tree")
	}

	webRouter := gin.New()
	if log.Level > logrus.InfoLevel {
		webRouter.Use(ginlogrus.Logger(log))
	}
	webRouter.Use(gin.Recovery())
	webRouter.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		c.Next()
	})

	// Хэндлеры

	webRouter.GET("/", func(c *gin.Context) {
		summary := listing.Summary()
		data := TemplateIndex{
			Title:       fmt.Sprintf("%s (%s) от %s", product, gitVersion, gitDate),
			Version:     gitVersion,
			Date:        gitDate,
			Copyright:   copyright,
			ListingName: filepath.Base(listing.Path),
			Directories: summary.Directories,
			Files:       summary.Files,
			TotalSize:   humanize.Bytes(uint64(listing.Root().TotalSize())),
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := indexTpl.ExecuteTemplate(c.Writer, "index", data); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
		}
	})

	webRouter.GET("/api/entries", func(c *gin.Context) {
		c.JSON(http.StatusOK, listing.Entries)
	})

	webRouter.GET("/api/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, listing.Summary())
	})

	webRouter.GET("/tree/*action", func(c *gin.Context) {
		action := c.Param("action")

		fileInListing, files, err := listing.ReadPath(action)
		if err != nil {
			if errors.IsNotFound(err) {
				c.String(http.StatusNotFound, err.Error())
			} else {
				c.String(http.StatusInternalServerError, err.Error())
			}
			return
		}

		// Описание файла отдаём в JSON
		if fileInListing != nil {
			c.JSON(http.StatusOK, fileInListing)
			return
		}

		// Относительные ссылки в дереве работают только для пути со слэшем на конце
		if !strings.HasSuffix(c.Request.URL.Path, "/") {
			c.Redirect(http.StatusMovedPermanently, c.Request.URL.Path+"/")
			return
		}

		data := TemplatesFiles{
			Title:      filepath.Base(listing.Path) + ":" + action,
			Version:    gitVersion,
			Date:       gitDate,
			Copyright:  copyright,
			FilesOrDir: make([]File, 0, len(files)),
			BackwardURL: File{
				URL: path.Dir(strings.TrimRight(c.Request.URL.Path, "/")) + "/",
			},
		}

		for _, v := range files {
			item := File{
				IsDir:    v.IsDir,
				Name:     v.Name,
				URL:      url.PathEscape(v.Name),
				CreateAt: v.CreateAt,
			}
			if v.IsDir {
				item.URL += "/"
			} else {
				item.Size = humanize.Bytes(uint64(v.Size))
			}
			data.FilesOrDir = append(data.FilesOrDir, item)
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := treeTpl.ExecuteTemplate(c.Writer, "tree", data); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
		}
	})

	// Статический контент из папки с листингом

	rootDir := filepath.Dir(listing.Path)
	log.Debugf("директория статических файлов: %s", rootDir)
	webRouter.Use(static.Serve("/static/", static.LocalFile(rootDir, true)))

	return webRouter, nil
}
